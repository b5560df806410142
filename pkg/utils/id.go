package utils

import (
	"strings"

	"github.com/google/uuid"
)

func NewID() string { return uuid.NewString() }

// NewToken 无连字符的随机串，用于文件名等
func NewToken() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }
