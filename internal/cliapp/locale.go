// Package cliapp wires the collection engine into a Cobra-based CLI: flag
// parsing, an optional TOML defaults file, localized one-line error
// messages, and the progress/summary console output. Grounded on the
// teacher's cmd/main/main.go for the "build config from flags, init
// logger, run, report" shape.
package cliapp

import "collector/internal/apperrors"

// Locale selects the language of the CLI's one-line error messages,
// matching the --locale {ru,en} flag in spec §6.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

var messagesEN = map[apperrors.Kind]string{
	apperrors.Collector:         "collection failed",
	apperrors.Validation:        "invalid configuration",
	apperrors.PathError:         "path error",
	apperrors.FileOperation:     "file operation failed",
	apperrors.Configuration:     "configuration error",
	apperrors.SecurityViolation: "unsafe path rejected",
	apperrors.FilterError:       "invalid filter pattern",
	apperrors.WorkerPool:        "worker pool error",
	apperrors.ProgressTracking:  "progress tracking error",
	apperrors.Archive:           "archive creation failed",
}

var messagesRU = map[apperrors.Kind]string{
	apperrors.Collector:         "сбор файлов не выполнен",
	apperrors.Validation:        "неверная конфигурация",
	apperrors.PathError:         "ошибка пути",
	apperrors.FileOperation:     "ошибка файловой операции",
	apperrors.Configuration:     "ошибка конфигурации",
	apperrors.SecurityViolation: "небезопасный путь отклонён",
	apperrors.FilterError:       "неверный шаблон фильтра",
	apperrors.WorkerPool:        "ошибка пула воркеров",
	apperrors.ProgressTracking:  "ошибка отслеживания прогресса",
	apperrors.Archive:           "не удалось создать архив",
}

// Message returns the one-line, localized message for err's taxonomy
// kind, falling back to the Collector catch-all message for an unknown
// kind or an unrecognized locale.
func Message(locale Locale, err error) string {
	kind := apperrors.KindOf(err)
	table := messagesEN
	if locale == LocaleRU {
		table = messagesRU
	}
	if msg, ok := table[kind]; ok {
		return msg
	}
	return table[apperrors.Collector]
}
