package logging

import "go.uber.org/zap"

// New returns a console logger in development and a JSON logger otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
