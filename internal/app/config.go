package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env, Port string
	APIPrefix string

	StoreDriver string
	MongoURI    string
	DBName      string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	UploadBackend string
	UploadDir     string
	S3Bucket      string
	S3Region      string
	S3PublicURL   string

	CORSOrigins []string
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func LoadConfig() Config {
	mongoURI := getEnv("MONGO_URI", getEnv("MONGO_PUBLIC_URL", getEnv("MONGO_URL", "mongodb://localhost:27017")))
	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		Env:           getEnv("APP_ENV", "dev"),
		Port:          getEnv("PORT", "3000"),
		APIPrefix:     getEnv("API_URL", "/api/v1"),
		StoreDriver:   getEnv("STORE_DRIVER", "mongo"),
		MongoURI:      mongoURI,
		DBName:        getEnv("DB_NAME", "eshop-database"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      24 * time.Hour,
		BcryptCost:    getEnvInt("BCRYPT_COST", 10),
		UploadBackend: getEnv("UPLOAD_BACKEND", "local"),
		UploadDir:     getEnv("UPLOAD_DIR", "public/uploads"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),
		CORSOrigins:   origins,
	}
}
