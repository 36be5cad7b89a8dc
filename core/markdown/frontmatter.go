package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterFence = "---"

// ExtractFrontMatter splits text that begins with a `---`-delimited block into
// a flat key/value map and the remaining body. Malformed blocks are not an
// error: the whole input becomes the body and the map is nil.
func ExtractFrontMatter(text string) (map[string]string, string) {
	if !strings.HasPrefix(text, frontMatterFence) {
		return nil, text
	}

	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[0]) != frontMatterFence {
		return nil, text
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterFence {
			closing = i
			break
		}
	}
	if closing == -1 {
		return nil, text
	}

	block := strings.Join(lines[1:closing], "\n")
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil || raw == nil {
		return nil, text
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = strings.Trim(fmt.Sprint(v), `"'`)
	}

	body := strings.Join(lines[closing+1:], "\n")
	return fields, strings.TrimPrefix(body, "\n")
}

// FrontMatterBlock renders a flat key/value map as a `---`-delimited YAML
// block, for prepending to Markdown artifacts.
func FrontMatterBlock(fields map[string]any) string {
	out, err := yaml.Marshal(fields)
	if err != nil {
		return ""
	}
	return frontMatterFence + "\n" + string(out) + frontMatterFence + "\n"
}
