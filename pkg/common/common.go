package common

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a snowflake int64 id.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a random uuid string.
func UUID() string {
	return uuid.NewString()
}

// Sha256HashWithSalt hash with salt
func Sha256HashWithSalt(src string, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GetSecretSalt reads the secret salt from env, falling back to a
// fixed development value.
func GetSecretSalt() string {
	if v := os.Getenv("OPENMALL_SECRET"); v != "" {
		return v
	}
	return "openmall-secret"
}
