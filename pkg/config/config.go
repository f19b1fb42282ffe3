package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDB                 string
	JWTSecret               string
	FirebaseCredentialsPath string
	RedisAddr               string
	LogLevel                string
	LogPretty               bool
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "socialmedia"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogPretty:               getEnv("LOG_PRETTY", "") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
