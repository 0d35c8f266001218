package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_BeforeSave_HashesPlainPassword(t *testing.T) {
	user := &User{
		Username: "student",
		Email:    "student@test.com",
		Password: "secret123",
	}

	err := user.BeforeSave(nil)

	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.Password, "Пароль должен быть захеширован")
	assert.True(t, strings.HasPrefix(user.Password, "$2"), "Ожидается bcrypt-хеш")
}

func TestUser_BeforeSave_SkipsAlreadyHashed(t *testing.T) {
	user := &User{Email: "student@test.com", Password: "plain"}
	require.NoError(t, user.BeforeSave(nil))
	hashed := user.Password

	// Повторное сохранение не должно хешировать хеш
	require.NoError(t, user.BeforeSave(nil))
	assert.Equal(t, hashed, user.Password)
}

func TestUser_BeforeSave_SkipsEmptyPassword(t *testing.T) {
	user := &User{Email: "oauth@test.com"}
	require.NoError(t, user.BeforeSave(nil))
	assert.Empty(t, user.Password, "OAuth-аккаунт остаётся без пароля")
}

func TestUser_CheckPassword(t *testing.T) {
	user := &User{Email: "student@test.com", Password: "secret123"}
	require.NoError(t, user.BeforeSave(nil))

	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.False(t, user.CheckPassword(""))
}

func TestUser_CheckPassword_NoPasswordAccount(t *testing.T) {
	user := &User{Email: "oauth@test.com"}

	assert.False(t, user.CheckPassword("anything"), "Аккаунт без пароля не проходит парольный вход")
	assert.False(t, user.HasPasswordAuth())
}
