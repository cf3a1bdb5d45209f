package main

import (
	"log"

	"backend_uchet/api"
	"backend_uchet/config"
	"backend_uchet/database"
	"backend_uchet/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// initDB инициализирует подключение к базе данных
func initDB() {
	log.Println("🔧 Инициализация базы данных...")

	// Создаем базу данных, если она не существует
	if err := database.CreateDatabaseIfNotExists(); err != nil {
		log.Fatal("❌ Ошибка при создании базы данных:", err)
	}

	// Подключаемся к базе данных
	if err := database.ConnectDatabase(); err != nil {
		log.Fatal("❌ Ошибка подключения к базе данных:", err)
	}

	log.Println("✅ База данных успешно инициализирована")
}

func main() {
	// Загружаем переменные окружения из .env файла
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Файл .env не найден, используются системные переменные окружения")
	}

	cfg := config.Load()

	// Инициализируем базу данных
	initDB()

	// Служебные записи должны существовать до обработки запросов
	structure := services.NewStructureService(database.DB)
	if err := structure.EnsureSentinels(); err != nil {
		log.Fatal("❌ Ошибка инициализации служебных записей:", err)
	}

	// Redis нужен только для кэша статистики, без него работаем напрямую с БД
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis недоступен, кэширование отключено: %v", err)
	}
	cache := services.NewCacheService(database.GetRedis(), log.Default())

	// Telegram для напоминаний о платежах (необязателен)
	telegram, err := services.NewTelegramClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Printf("⚠️  Telegram уведомления отключены: %v", err)
		telegram = nil
	}

	ledger := services.NewLedgerService(database.DB, telegram)
	reports := services.NewReportService(database.DB, cfg.Uploads.ReportsDir)

	// Ежедневная проверка отделов без платежей за текущий месяц
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 9 * * *", func() {
		if err := ledger.CheckMissingMonthlyPayments(); err != nil {
			log.Printf("Ошибка проверки платежей: %v", err)
		}
	}); err != nil {
		log.Printf("⚠️  Не удалось запланировать проверку платежей: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Настраиваем Gin router
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsConfig))

	// Базовые роуты
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "success",
			"message":  "pong",
			"database": "connected",
		})
	})

	departmentAPI := api.NewDepartmentAPI(database.DB, structure)
	positionAPI := api.NewPositionAPI(database.DB, structure)
	specializationAPI := api.NewSpecializationAPI(database.DB, structure)
	employeeAPI := api.NewEmployeeAPI(database.DB)
	equipmentAPI := api.NewEquipmentAPI(database.DB)
	paymentAPI := api.NewPaymentAPI(database.DB, ledger, cache, cfg.Uploads.ReceiptsDir)
	fuelAPI := api.NewFuelAPI(database.DB, ledger)
	reportAPI := api.NewReportAPI(reports)
	dashboardAPI := api.NewDashboardAPI(database.DB, cache)

	// API роуты
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/departments", departmentAPI.CreateDepartment)
		apiGroup.GET("/departments", departmentAPI.GetDepartments)
		apiGroup.GET("/departments/:id", departmentAPI.GetDepartment)
		apiGroup.PUT("/departments/:id", departmentAPI.UpdateDepartment)
		apiGroup.DELETE("/departments/:id", departmentAPI.DeleteDepartment)

		apiGroup.POST("/positions", positionAPI.CreatePosition)
		apiGroup.GET("/positions", positionAPI.GetPositions)
		apiGroup.GET("/positions/:id", positionAPI.GetPosition)
		apiGroup.PUT("/positions/:id", positionAPI.UpdatePosition)
		apiGroup.DELETE("/positions/:id", positionAPI.DeletePosition)

		apiGroup.POST("/specializations", specializationAPI.CreateSpecialization)
		apiGroup.GET("/specializations", specializationAPI.GetSpecializations)
		apiGroup.PUT("/specializations/:id", specializationAPI.UpdateSpecialization)
		apiGroup.DELETE("/specializations/:id", specializationAPI.DeleteSpecialization)

		apiGroup.POST("/employees", employeeAPI.CreateEmployee)
		apiGroup.GET("/employees", employeeAPI.GetEmployees)
		apiGroup.GET("/employees/:id", employeeAPI.GetEmployee)
		apiGroup.PUT("/employees/:id", employeeAPI.UpdateEmployee)
		apiGroup.DELETE("/employees/:id", employeeAPI.DeleteEmployee)

		apiGroup.POST("/equipment", equipmentAPI.CreateEquipment)
		apiGroup.GET("/equipment", equipmentAPI.GetEquipment)
		apiGroup.GET("/equipment/:id", equipmentAPI.GetEquipmentItem)
		apiGroup.PUT("/equipment/:id", equipmentAPI.UpdateEquipment)
		apiGroup.DELETE("/equipment/:id", equipmentAPI.DeleteEquipment)
		apiGroup.POST("/equipment-categories", equipmentAPI.CreateEquipmentCategory)
		apiGroup.GET("/equipment-categories", equipmentAPI.GetEquipmentCategories)
		apiGroup.DELETE("/equipment-categories/:id", equipmentAPI.DeleteEquipmentCategory)

		apiGroup.POST("/payments", paymentAPI.CreatePayment)
		apiGroup.GET("/payments", paymentAPI.GetPayments)
		apiGroup.DELETE("/payments/:id", paymentAPI.DeletePayment)
		apiGroup.GET("/payments/latest-reading", paymentAPI.GetLatestReading)
		apiGroup.GET("/payments/statistics", paymentAPI.GetStatistics)
		apiGroup.POST("/payments/:id/receipt", paymentAPI.UploadReceipt)

		apiGroup.POST("/fuel", fuelAPI.CreateTransaction)
		apiGroup.GET("/fuel", fuelAPI.GetTransactions)
		apiGroup.DELETE("/fuel/:id", fuelAPI.DeleteTransaction)
		apiGroup.GET("/fuel/latest-reading", fuelAPI.GetLatestReading)
		apiGroup.GET("/fuel/statistics", fuelAPI.GetStatistics)
		apiGroup.GET("/fuel/balance", fuelAPI.GetBalance)

		apiGroup.GET("/reports/:type", reportAPI.ExportReport)
		apiGroup.GET("/dashboard/stats", dashboardAPI.GetDashboardStats)
	}

	log.Printf("🚀 Сервер запущен на порту %s", cfg.App.Port)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatal("❌ Ошибка запуска сервера:", err)
	}
}
