package password

import (
	"golang.org/x/crypto/bcrypt"
)

// MinLength 重置密码时要求的最小长度
const MinLength = 6

// Hash 生成密码哈希（bcrypt，cost=10）
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验密码
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// TooShort 密码长度是否不足
func TooShort(plain string) bool {
	return len([]rune(plain)) < MinLength
}
