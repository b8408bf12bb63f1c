package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGSchedulingDSN string `envconfig:"PG_SCHEDULING_DSN" required:"true"`

	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`

	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// RabbitMQ
	RabbitURL     string `envconfig:"RABBIT_URL" required:"true"`
	EventExchange string `envconfig:"EVENT_EXCHANGE" default:"scheduling.exchange"`

	// Every store operation runs under this deadline and surfaces a
	// timeout instead of hanging.
	OpTimeoutMS int `envconfig:"OP_TIMEOUT_MS" default:"3000"`
}

func (a App) OpTimeout() time.Duration {
	return time.Duration(a.OpTimeoutMS) * time.Millisecond
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
