package dump

import (
	"encoding/base64"
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/pgavlin/wasmjs/wasm"
)

func dumpSections(w io.Writer, m *wasm.Module) error {
	type row struct {
		Index   int    `csv:"index"`
		ID      uint8  `csv:"id"`
		Section string `csv:"section"`
		Name    string `csv:"name"`
		Offset  int64  `csv:"offset"`
		Size    int64  `csv:"size"`
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	encoder := csvutil.NewEncoder(csvWriter)
	for i, s := range m.Sections {
		r := row{
			Index:   i,
			ID:      uint8(s.ID),
			Section: s.ID.String(),
			Name:    s.Name,
			Offset:  s.Start,
			Size:    s.Size(),
		}
		if err := encoder.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// rows:
// - chunk: pop index, encoded length, decoded length, whether the chunk is the terminal chunk

func dumpChunks(w io.Writer, chunks []string) error {
	type row struct {
		Index    int  `csv:"index"`
		Encoded  int  `csv:"encoded"`
		Decoded  int  `csv:"decoded"`
		Terminal bool `csv:"terminal"`
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	encoder := csvutil.NewEncoder(csvWriter)
	for i, c := range chunks {
		decoded, err := base64.StdEncoding.DecodeString(c)
		if err != nil {
			return err
		}
		r := row{
			Index:    i,
			Encoded:  len(c),
			Decoded:  len(decoded),
			Terminal: i == len(chunks)-1,
		}
		if err := encoder.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
