package export

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// json matches encoding/json output byte for byte, including sorted map keys.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteJSONFile writes v to path, or to stdout when path is "-".
func WriteJSONFile(path string, v any) (err error) {
	if path == "-" {
		return WriteJSON(os.Stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteJSON(f, v)
}
