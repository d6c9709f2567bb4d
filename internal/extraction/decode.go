package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses an extraction response. Surrounding prose and Markdown code
// fences are ignored; the outermost JSON object is decoded.
func Decode(raw []byte) (Result, error) {
	body := outerObject(raw)
	if body == nil {
		return Result{}, fmt.Errorf("decode extraction: no JSON object in response")
	}
	var r Result
	if err := json.Unmarshal(body, &r); err != nil {
		return Result{}, fmt.Errorf("decode extraction: %w", err)
	}
	return r, nil
}

func outerObject(raw []byte) []byte {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil
	}
	return raw[start : end+1]
}
