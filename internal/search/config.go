package search

import (
	"strconv"
	"strings"

	"github.com/Flarenzy/node-inventory/internal/domain"
)

// Key is a canonical query field.
type Key string

const (
	KeyIdentifier     Key = "id"
	KeyIDs            Key = "ids"
	KeyName           Key = "name"
	KeyIP             Key = "ip"
	KeyVersionDecoded Key = "version_decoded"
	KeyVersion        Key = "version"
	KeyTicket         Key = "ticket"
	KeyNetworkVID     Key = "network_vid"
	KeyMFTPServerVID  Key = "mftp_server_vid"
	KeyCreationDate   Key = "creation_date"
	KeyDeletionDate   Key = "deletion_date"
)

// DefaultThreshold caps how many identifiers a range query may cover.
const DefaultThreshold uint32 = 0xff

// Config is passed explicitly to every parser and builder call.
type Config struct {
	Threshold uint32
	// Aliases maps lowercase query keys to canonical fields.
	Aliases map[string]Key
}

func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Aliases:   DefaultAliases(),
	}
}

func DefaultAliases() map[string]Key {
	return map[string]Key{
		"id":              KeyIdentifier,
		"ids":             KeyIDs,
		"name":            KeyName,
		"ip":              KeyIP,
		"version":         KeyVersionDecoded,
		"ver":             KeyVersionDecoded,
		"version_hw":      KeyVersion,
		"ver_hw":          KeyVersion,
		"ticket":          KeyTicket,
		"network_vid":     KeyNetworkVID,
		"mftp_server_vid": KeyMFTPServerVID,
		"creation_date":   KeyCreationDate,
		"deletion_date":   KeyDeletionDate,
	}
}

// ParseThreshold accepts a decimal or 0x-prefixed hexadecimal threshold.
func ParseThreshold(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	digits := s
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		base, digits = 16, rest
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, &domain.ValidationError{Field: "vid_search_threshold", Value: s, Reason: "must be a decimal or 0x-prefixed hex number below 2^32"}
	}
	return uint32(n), nil
}

func (c Config) lookup(key string) (Key, bool) {
	aliases := c.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}
	k, ok := aliases[strings.ToLower(strings.TrimSpace(key))]
	return k, ok
}
