package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Notifuse/ampmailer/internal/domain"
)

var assetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Notifuse/ampmailer/assets"))

// ContentID names the hosting destination of an upload as <slot>-<hash>.
// The same bytes always get the same id; any change gives a new one.
func ContentID(slot domain.SlotID, data []byte) string {
	sum := strings.ReplaceAll(uuid.NewSHA1(assetNamespace, data).String(), "-", "")
	return fmt.Sprintf("%s-%s", slot, sum[:12])
}
