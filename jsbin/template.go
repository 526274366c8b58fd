package jsbin

// The emitted module is laid out as
//
//	header (import statement and IMPORTS_KEY)
//	prolog chunk (sep chunk)* epilog
//
// The chunk container is appended in encode order and reversed once when the
// module is evaluated, so popping from the end yields the original order.

const (
	// StackName is the identifier bound to the chunk container.
	StackName = "CHUNK_STACK"

	// AccessorName is the exported function that resolves to the loaded module.
	AccessorName = "getWasm"

	prolog = "\nconst " + StackName + " = [\n\""

	separator = "\",\n\""

	// containerClose ends the literal and applies the single reversal.
	containerClose = "\"\n].reverse();\n"

	loader = `
async function chunkBytes(base64) {
  if (typeof Buffer !== 'undefined') {
    return Buffer.from(base64, 'base64');
  }
  const res = await fetch("data:application/octet-stream;base64," + base64);
  return new Uint8Array(await res.arrayBuffer());
}

export class LoadError extends Error {
  constructor(message, cause) {
    super(message);
    this.name = 'LoadError';
    this.cause = cause;
  }
}

async function loadWasm() {
  const compressed = new ReadableStream({
    type: 'bytes',
    cancel: () => {
      ` + StackName + `.length = 0;
    },
    pull: async (ctrl) => {
      if (` + StackName + `.length) {
        ctrl.enqueue(await chunkBytes(` + StackName + `.pop()));
      } else {
        ctrl.close();
      }
    }
  });
  const body = compressed.pipeThrough(new DecompressionStream('deflate'));
  const response = new Response(body, {
    status: 200,
    statusText: 'OK',
    headers: {
      'content-type': 'application/wasm'
    }
  });
  let instance;
  try {
    ({instance} = await WebAssembly.instantiateStreaming(response, {
      [IMPORTS_KEY]: importObject
    }));
  } catch (err) {
    ` + StackName + `.length = 0;
    throw new LoadError('failed to load embedded wasm module', err);
  }
  if (typeof importObject.__wbg_set_wasm === 'function') {
    importObject.__wbg_set_wasm(instance.exports);
  }
  if (typeof instance.exports.__wbindgen_start === 'function') {
    instance.exports.__wbindgen_start();
  }
  return importObject;
}

export let WASM_PROMISE;

export function ` + AccessorName + `() {
  if (WASM_PROMISE === undefined) {
    WASM_PROMISE = loadWasm();
  }
  return WASM_PROMISE;
}
`

	epilog = containerClose + loader
)

const headerFormat = "import * as importObject from %s;\nconst IMPORTS_KEY = %s;\n"
