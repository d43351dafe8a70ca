package util

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LoadPrompt читает <PROMPT_DIR>/<name>.txt; если файла нет — возвращает встроенный fallback.
func LoadPrompt(dir, name, fallback string) string {
	if dir == "" {
		dir = os.Getenv("PROMPT_DIR")
	}
	if dir == "" {
		return fallback
	}
	p := filepath.Join(dir, name+".txt")
	b, err := os.ReadFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithField("path", p).Warnf("prompt: %v", err)
		}
		return fallback
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		log.WithField("path", p).Debug("prompt override loaded")
		return s
	}
	return fallback
}
