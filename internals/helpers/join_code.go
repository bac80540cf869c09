package helper

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CodeGenerator derives namespaced v5 UUID codes. Section and rumble join
// codes mix in the current time so repeated keys still give distinct codes;
// validation and reset codes are derived from the key alone.
type CodeGenerator struct {
	Namespace uuid.UUID
	Now       func() time.Time
}

// NewCodeGenerator parses ns as a UUID; any other non-empty string is hashed
// into the URL namespace so a malformed setting still yields a stable namespace.
func NewCodeGenerator(ns string) *CodeGenerator {
	ns = strings.TrimSpace(ns)
	id, err := uuid.Parse(ns)
	if err != nil {
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(ns))
	}
	return &CodeGenerator{Namespace: id, Now: time.Now}
}

// JoinCode returns uuidv5(namespace, "<key>-<unix millis>").
func (g *CodeGenerator) JoinCode(key string) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return uuid.NewSHA1(g.Namespace, []byte(fmt.Sprintf("%s-%d", key, now().UnixMilli()))).String()
}

// Code returns uuidv5(namespace, key).
func (g *CodeGenerator) Code(key string) string {
	return uuid.NewSHA1(g.Namespace, []byte(key)).String()
}
