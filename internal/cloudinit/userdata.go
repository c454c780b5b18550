// Package cloudinit loads user supplied cloud-init user-data for launch.
//
// The daemon builds the NoCloud seed for the instance; the client only
// checks that the document is a cloud-config mapping and sends it along
// with the "#cloud-config" header cloud-init requires.
//
// See https://cloudinit.readthedocs.io/en/latest/explanation/format.html#cloud-config-data
package cloudinit

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/corral/internal/exitcode"
)

// Header must start every cloud-config document.
const Header = "#cloud-config\n"

// Stdin is the path that reads user-data from standard input.
const Stdin = "-"

// UserData is a parsed cloud-config document.
type UserData map[string]any

// Parse decodes a cloud-config document. An empty document yields empty
// user-data; anything other than a mapping is rejected.
func Parse(data []byte) (UserData, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return UserData{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return UserData{}, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("cloud-init configuration must be a YAML mapping")
	}

	ud := UserData{}
	if err := node.Decode(&ud); err != nil {
		return nil, fmt.Errorf("failed to decode cloud-config: %w", err)
	}
	return ud, nil
}

// Render returns the document with the cloud-config header.
func (u UserData) Render() (string, error) {
	if len(u) == 0 {
		return Header, nil
	}
	yamlBytes, err := yaml.Marshal(map[string]any(u))
	if err != nil {
		return "", fmt.Errorf("failed to marshal user-data to YAML: %w", err)
	}
	return Header + string(yamlBytes), nil
}

// Load reads user-data from path, or from stdin when path is "-", and
// returns it ready to send. Every failure is a command line error.
func Load(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == Stdin {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", exitcode.Usagef("error loading cloud-init config: %v", err)
	}

	ud, err := Parse(data)
	if err != nil {
		return "", exitcode.Usagef("error loading cloud-init config %s: %v", path, err)
	}
	out, err := ud.Render()
	if err != nil {
		return "", exitcode.Usagef("error loading cloud-init config %s: %v", path, err)
	}
	return out, nil
}
