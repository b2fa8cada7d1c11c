package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Address        string
	Port           int
	MongoURI       string
	MongoDB        string
	AlpacaWSSURL   string
	AlpacaKey      string
	AlpacaSecret   string
	ReconnectDelay time.Duration
	FlushInterval  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "5000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, errors.New("invalid PORT value")
	}

	address := os.Getenv("ADDRESS")
	if address == "" {
		address = "0.0.0.0"
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "stockfolio"
	}

	wssURL := os.Getenv("ALPACA_WSS_URL")
	if wssURL == "" {
		wssURL = "wss://stream.data.alpaca.markets/v2/iex"
	}

	reconnectStr := os.Getenv("RECONNECT_DELAY_SECONDS")
	if reconnectStr == "" {
		reconnectStr = "5"
	}
	reconnectSecs, err := strconv.Atoi(reconnectStr)
	if err != nil || reconnectSecs <= 0 {
		return nil, errors.New("invalid RECONNECT_DELAY_SECONDS value")
	}

	flushStr := os.Getenv("FLUSH_INTERVAL_SECONDS")
	if flushStr == "" {
		flushStr = "5"
	}
	flushSecs, err := strconv.Atoi(flushStr)
	if err != nil || flushSecs <= 0 {
		return nil, errors.New("invalid FLUSH_INTERVAL_SECONDS value")
	}

	return &Config{
		Address:        address,
		Port:           port,
		MongoURI:       mongoURI,
		MongoDB:        mongoDB,
		AlpacaWSSURL:   wssURL,
		AlpacaKey:      os.Getenv("ALPACA_API_KEY"),
		AlpacaSecret:   os.Getenv("ALPACA_SECRET_KEY"),
		ReconnectDelay: time.Duration(reconnectSecs) * time.Second,
		FlushInterval:  time.Duration(flushSecs) * time.Second,
	}, nil
}
