// Package transform renders template files during sync. Rendering is a pure
// function of the template path and a key-value context supplied by the file
// rule; the sync engine treats it as an opaque collaborator.
package transform

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/repo-file-sync/internal/logging"
)

// Renderer renders a template file with a variable context.
type Renderer interface {
	// Render reads the file at path and substitutes every context variable,
	// returning the rendered content. The file on disk is not modified.
	Render(path string, context map[string]string) ([]byte, error)
}

// variableRenderer substitutes {{ var }} and ${var} style variables.
type variableRenderer struct {
	logger    *logrus.Logger
	logConfig *logging.LogConfig
}

// NewRenderer creates a template renderer.
func NewRenderer(logger *logrus.Logger, logConfig *logging.LogConfig) Renderer {
	return &variableRenderer{
		logger:    logger,
		logConfig: logConfig,
	}
}

// Render reads the template and applies the context.
func (r *variableRenderer) Render(path string, context map[string]string) ([]byte, error) {
	content, err := os.ReadFile(path) //#nosec G304 -- Path comes from the sync rule
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	start := time.Now()
	rendered, replacements := substituteVariables(content, context)

	if r.logConfig != nil && r.logConfig.Debug.Transform {
		logging.WithStandardFields(r.logger, r.logConfig, logging.ComponentNames.Transform).
			WithFields(logrus.Fields{
				logging.StandardFields.FilePath:    path,
				logging.StandardFields.Operation:   logging.OperationTypes.Render,
				logging.StandardFields.ContentSize: len(rendered),
				logging.StandardFields.DurationMs:  time.Since(start).Milliseconds(),
				"replacements":                     replacements,
			}).Debug("Template rendered")
	}

	return rendered, nil
}

// substituteVariables replaces every occurrence of each context variable in
// {{ var }}, {{var}}, and ${var} syntax. Longer variable names are replaced
// first so that {{SERVICE_NAME}} is not clobbered by a {{SERVICE}} variable.
func substituteVariables(content []byte, context map[string]string) ([]byte, int) {
	if len(context) == 0 {
		return content, 0
	}

	names := make([]string, 0, len(context))
	for name := range context {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	result := string(content)
	replacements := 0
	for _, name := range names {
		value := context[name]
		for _, pattern := range []string{
			fmt.Sprintf("{{ %s }}", name),
			fmt.Sprintf("{{%s}}", name),
			fmt.Sprintf("${%s}", name),
		} {
			replacements += strings.Count(result, pattern)
			result = strings.ReplaceAll(result, pattern, value)
		}
	}

	return []byte(result), replacements
}
