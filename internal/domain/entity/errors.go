package entity

import (
	"errors"
	"fmt"
)

// FailureKind тип ошибки обработки отдельного снимка
type FailureKind string

const (
	FailureMarkerDetection  FailureKind = "MarkerDetectionError"
	FailureAmbiguousMarkers FailureKind = "AmbiguousMarkerAssignmentError"
	FailureInvalidGeometry  FailureKind = "InvalidFieldGeometryError"
)

// MarkerDetectionError найдено меньше маркеров, чем ожидалось
type MarkerDetectionError struct {
	Found    int
	Expected int
	Err      error // причина, если сам поиск завершился ошибкой
}

func (e *MarkerDetectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("marker detection failed: %v", e.Err)
	}
	return fmt.Sprintf("marker detection: found %d markers, expected %d", e.Found, e.Expected)
}

func (e *MarkerDetectionError) Unwrap() error { return e.Err }

// Kind возвращает тип ошибки.
func (e *MarkerDetectionError) Kind() FailureKind { return FailureMarkerDetection }

// AmbiguousMarkerAssignmentError маркеры не удалось однозначно распределить по сторонам
type AmbiguousMarkerAssignmentError struct {
	Role  EdgeRole
	Count int // сколько маркеров претендует на сторону
}

func (e *AmbiguousMarkerAssignmentError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("ambiguous marker assignment: no marker for %s edge", e.Role)
	}
	return fmt.Sprintf("ambiguous marker assignment: %d markers compete for %s edge", e.Count, e.Role)
}

// Kind возвращает тип ошибки.
func (e *AmbiguousMarkerAssignmentError) Kind() FailureKind { return FailureAmbiguousMarkers }

// InvalidFieldGeometryError некорректная геометрия поля (любого источника)
type InvalidFieldGeometryError struct {
	Source string // light, radiation, scale
	Reason string
	Err    error
}

func (e *InvalidFieldGeometryError) Error() string {
	msg := fmt.Sprintf("invalid %s field geometry: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFieldGeometryError) Unwrap() error { return e.Err }

// Kind возвращает тип ошибки.
func (e *InvalidFieldGeometryError) Kind() FailureKind { return FailureInvalidGeometry }

type kinded interface {
	Kind() FailureKind
}

// FailureFrom превращает ошибку обработки снимка в запись о сбое.
// Ошибки без типа считаются некорректной геометрией.
func FailureFrom(err error) *Failure {
	if err == nil {
		return nil
	}
	kind := FailureInvalidGeometry
	var k kinded
	if errors.As(err, &k) {
		kind = k.Kind()
	}
	return &Failure{Kind: kind, Message: err.Error()}
}
