package main

import (
	"log"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/app"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/config"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Собираем граф зависимостей
	application, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// Запускаем сервер, блокируемся до graceful shutdown
	if err := application.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
