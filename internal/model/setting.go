package model

import (
	"fmt"
	"strings"
)

const (
	SettingEnableDarkMode         = "enableDarkMode"
	SettingAutoImportPendingTasks = "autoImportPendingTasks"
)

type Setting struct {
	ID    int64
	Name  string
	Value string
}

func (s Setting) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: setting name is required", ErrValidation)
	}
	return nil
}

func (s Setting) Bool() bool {
	return strings.EqualFold(strings.TrimSpace(s.Value), "true")
}
