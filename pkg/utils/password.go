package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash 用户不存在时也做一次比对，避免通过耗时探测用户名
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("perfume-catalog-dummy"), bcrypt.DefaultCost)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// BurnPassword 与 CheckPassword 耗时相当，不返回结果
func BurnPassword(pw string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
}
