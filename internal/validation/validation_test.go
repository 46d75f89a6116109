package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Name     string `json:"name" validate:"required" label:"Name"`
	Email    string `json:"email" validate:"required,email_basic" label:"Email"`
	Password string `json:"password" validate:"required,min=6" label:"Password"`
	Count    int    `json:"count" validate:"gte=0"`
}

func TestStructValid(t *testing.T) {
	assert.Nil(t, Struct(signup{Name: "Ann", Email: "ann@example.com", Password: "secret"}))
}

func TestStructFlattensMessages(t *testing.T) {
	msgs := Struct(signup{Email: "not-an-email", Password: "123", Count: -1})

	assert.ElementsMatch(t, []string{
		"Name is required",
		"Please use a valid email address",
		"Password must be at least 6 characters long",
		"count must be at least 0",
	}, msgs)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.co"))
	assert.False(t, IsEmail("a@b"))
	assert.False(t, IsEmail("a b@c.d"))
	assert.False(t, IsEmail(""))
}

func TestUnmappedRuleUsesGenericMessage(t *testing.T) {
	type link struct {
		URL string `json:"url" validate:"url"`
	}

	assert.Equal(t, []string{"url failed the url rule"}, Struct(link{URL: "nope"}))
}
