package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Notifuse/ampmailer/internal/domain"
)

func TestContentID(t *testing.T) {
	a := ContentID(domain.SlotLogo, []byte("same bytes"))
	b := ContentID(domain.SlotLogo, []byte("same bytes"))
	c := ContentID(domain.SlotLogo, []byte("other bytes"))
	hero := ContentID(domain.SlotHero, []byte("same bytes"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^logo-[0-9a-f]{12}$`, a)
	assert.Regexp(t, `^hero-[0-9a-f]{12}$`, hero)
	assert.Equal(t, a[len("logo-"):], hero[len("hero-"):])
}
