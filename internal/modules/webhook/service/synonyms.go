package service

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Synonyms переводит имена действий из алертов в канонические.
type Synonyms map[string]string

// builtinSynonyms — имена, которые присылали старые алерты.
var builtinSynonyms = Synonyms{
	"SHORT_AGAIN": "SELL_AGAIN",
	"LONG_AGAIN":  "BUY_AGAIN",
}

// LoadSynonyms читает yaml-словарь "ALERT_NAME: CANONICAL" поверх встроенного.
// Пустой path — только встроенный словарь.
func LoadSynonyms(path string) (Synonyms, error) {
	out := make(Synonyms, len(builtinSynonyms))
	for k, v := range builtinSynonyms {
		out[k] = v
	}
	if path == "" {
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms %s: %w", path, err)
	}
	var file map[string]string
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse synonyms %s: %w", path, err)
	}
	for k, v := range file {
		out[normalize(k)] = normalize(v)
	}
	return out, nil
}

// Resolve возвращает каноническое имя или само действие, если синонима нет.
func (s Synonyms) Resolve(action string) string {
	a := normalize(action)
	if c, ok := s[a]; ok {
		return c
	}
	return a
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
