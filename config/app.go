package config

type App struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	Env         string
}
