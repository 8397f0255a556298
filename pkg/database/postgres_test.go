package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "marathon", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=marathon sslmode=disable", dsn)
}
