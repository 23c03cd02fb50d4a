package intent

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ReadJSONL reads a newline-delimited JSON file of order intents, one
// per line, validating each as it is read. Blank lines are skipped.
func ReadJSONL(path string) ([]OrderIntent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var intents []OrderIntent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var in OrderIntent
		if err := json.Unmarshal(text, &in); err != nil {
			return nil, fmt.Errorf("line %d: parse intent: %w", line, err)
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: invalid intent: %w", line, err)
		}
		intents = append(intents, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return intents, nil
}
