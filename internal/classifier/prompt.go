package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

const classifySystemPrompt = `You sort files into a user-described category.
You receive a JSON object with a "category" description and a "files" array.
Respond with JSON only, no prose, matching this shape exactly:
{"decisions":[{"filename":"<exact name from input>","include":true|false,"rationale":"<short reason>"}]}
Rules:
- Emit exactly one decision per input file, using the filename verbatim.
- Include a file only when it clearly belongs to the category.
- When unsure, set include to false.`

const conflictSystemPrompt = `You resolve a destination filename conflict during folder organization.
You receive a JSON object naming the existing file and the incoming file.
Respond with JSON only, matching this shape exactly:
{"action":"skip"|"rename"|"replace","new_name":"<only for rename>"}
Rules:
- Prefer "skip" when unsure; it is always safe.
- "rename" must supply a new_name that is a plain filename without path separators.
- Choose "replace" only when the incoming file is obviously the better copy.`

func renderClassifyPrompt(files []FileInfo, categoryDescription string) (string, error) {
	description := strings.TrimSpace(categoryDescription)
	if description == "" {
		return "", fmt.Errorf("category description is empty")
	}
	payload := struct {
		Category string     `json:"category"`
		Files    []FileInfo `json:"files"`
	}{
		Category: description,
		Files:    files,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode classification payload: %w", err)
	}
	return string(encoded), nil
}

func renderConflictPrompt(existing, incoming string) (string, error) {
	if strings.TrimSpace(existing) == "" || strings.TrimSpace(incoming) == "" {
		return "", fmt.Errorf("conflict prompt requires both filenames")
	}
	payload := struct {
		Existing string `json:"existing_file"`
		Incoming string `json:"incoming_file"`
	}{
		Existing: existing,
		Incoming: incoming,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode conflict payload: %w", err)
	}
	return string(encoded), nil
}
