// Package manifest checks the service's Kubernetes manifests against the
// bank's platform standards before they are applied.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/banking/credit-scoring-engine/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is the subset of a Kubernetes object the standards look at.
type Manifest struct {
	File       string   `yaml:"-"`
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       struct {
		Template struct {
			Spec PodSpec `yaml:"spec"`
		} `yaml:"template"`
	} `yaml:"spec"`
}

type Metadata struct {
	Name        string            `yaml:"name"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type PodSpec struct {
	SecurityContext PodSecurityContext `yaml:"securityContext"`
	Containers      []Container        `yaml:"containers"`
}

type PodSecurityContext struct {
	RunAsNonRoot   *bool `yaml:"runAsNonRoot"`
	SeccompProfile struct {
		Type string `yaml:"type"`
	} `yaml:"seccompProfile"`
}

type Container struct {
	Name            string                   `yaml:"name"`
	Image           string                   `yaml:"image"`
	Resources       Resources                `yaml:"resources"`
	SecurityContext ContainerSecurityContext `yaml:"securityContext"`
	LivenessProbe   map[string]interface{}   `yaml:"livenessProbe"`
	ReadinessProbe  map[string]interface{}   `yaml:"readinessProbe"`
}

type Resources struct {
	Requests map[string]string `yaml:"requests"`
	Limits   map[string]string `yaml:"limits"`
}

type ContainerSecurityContext struct {
	RunAsNonRoot             *bool `yaml:"runAsNonRoot"`
	ReadOnlyRootFilesystem   *bool `yaml:"readOnlyRootFilesystem"`
	AllowPrivilegeEscalation *bool `yaml:"allowPrivilegeEscalation"`
	Capabilities             struct {
		Drop []string `yaml:"drop"`
	} `yaml:"capabilities"`
}

// Ref identifies the manifest in findings, e.g. "deployment.yaml Deployment/banking-team-credit-scoring-prod".
func (m Manifest) Ref() string {
	return fmt.Sprintf("%s %s/%s", m.File, m.Kind, m.Metadata.Name)
}

func (m Manifest) containers() []Container {
	if m.Kind != "Deployment" {
		return nil
	}
	return m.Spec.Template.Spec.Containers
}

// LoadDir parses every .yaml and .yml file in dir, in name order. Files may
// hold several documents. A syntax error in any file fails the whole load.
func LoadDir(dir string) ([]Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ValidationError, "Manifest directory not readable")
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, apperrors.ValidationFailed("No YAML files found", dir)
	}
	sort.Strings(files)

	var manifests []Manifest
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ValidationError, "Manifest not readable")
		}
		docs, err := Parse(name, data)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, docs...)
	}
	return manifests, nil
}

// Parse decodes all documents in data. Empty documents are skipped, but a
// file with no documents at all is an error.
func Parse(file string, data []byte) ([]Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var out []Manifest
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.New(apperrors.ValidationError, "YAML syntax error", fmt.Sprintf("%s: %v", file, err))
		}
		if len(node.Content) == 0 || node.Content[0].Tag == "!!null" {
			continue
		}

		var m Manifest
		if err := node.Decode(&m); err != nil {
			return nil, apperrors.New(apperrors.ValidationError, "Manifest does not match the Kubernetes object shape", fmt.Sprintf("%s: %v", file, err))
		}
		m.File = file
		out = append(out, m)
	}

	if len(out) == 0 {
		return nil, apperrors.ValidationFailed("Empty manifest", file)
	}
	return out, nil
}
