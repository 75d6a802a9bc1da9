package entity

import (
	"path/filepath"
	"strings"
)

// AngleTag угол поворота стола в градусах, определённый по имени файла
type AngleTag int

// AngleRule соответствие подстроки имени файла и угла
type AngleRule struct {
	Substring string   `yaml:"substring" json:"substring"`
	Angle     AngleTag `yaml:"angle" json:"angle"`
}

// AngleTable упорядоченная таблица правил; порядок определяет приоритет.
type AngleTable struct {
	rules []AngleRule
}

// NewAngleTable копирует правила, чтобы таблица оставалась неизменной.
func NewAngleTable(rules []AngleRule) AngleTable {
	cp := make([]AngleRule, len(rules))
	copy(cp, rules)
	return AngleTable{rules: cp}
}

// DefaultAngleRules правила по умолчанию для снимков с поворотом стола.
func DefaultAngleRules() []AngleRule {
	return []AngleRule{
		{Substring: "45_couch", Angle: 45},
		{Substring: "90_couch", Angle: 90},
		{Substring: "180_couch", Angle: 180},
		{Substring: "45m_couch", Angle: -45},
		{Substring: "90m_couch", Angle: -90},
		{Substring: "180m_couch", Angle: -180},
	}
}

// DefaultAngleTable таблица с правилами по умолчанию.
func DefaultAngleTable() AngleTable {
	return NewAngleTable(DefaultAngleRules())
}

// Rules возвращает копию правил.
func (t AngleTable) Rules() []AngleRule {
	cp := make([]AngleRule, len(t.rules))
	copy(cp, t.rules)
	return cp
}

// Lookup ищет первое правило, подстрока которого входит в имя файла.
// Сравнение без учёта регистра, по базовому имени. Без совпадений — 0.
func (t AngleTable) Lookup(filename string) AngleTag {
	name := strings.ToLower(filepath.Base(filename))
	for _, rule := range t.rules {
		if rule.Substring == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(rule.Substring)) {
			return rule.Angle
		}
	}
	return 0
}
