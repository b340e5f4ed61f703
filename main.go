package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fenifisc-registro/controllers"
	"fenifisc-registro/driver"
	"fenifisc-registro/middleware"
	"fenifisc-registro/notify"
	"fenifisc-registro/scheduler"
	"fenifisc-registro/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on process environment")
	}
	if os.Getenv("SECRET") == "" {
		logrus.Fatal("SECRET variable is not set")
	}

	driver.RunMigrations()
	db := driver.ConnectDB()
	defer db.Close()

	var store storage.DocumentStore
	if s3store, err := storage.NewS3Store(); err != nil {
		logrus.WithError(err).Warn("document storage disabled")
	} else {
		store = s3store
	}

	notifier, err := notify.NewService()
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure notifications")
	}

	adminController := controllers.AdminController{}
	athleteController := controllers.AthleteController{Store: store, Notifier: notifier}
	competitionController := controllers.CompetitionController{}
	categoryController := controllers.CategoryController{}
	notifyController := controllers.NotifyController{Notifier: notifier}

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger)
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/admin-login", adminController.Login(db)).Methods("POST")

	api.HandleFunc("/athletes", athleteController.RegisterAthlete(db)).Methods("POST")
	api.HandleFunc("/athletes", middleware.RequireAdmin(athleteController.GetAthletes(db))).Methods("GET")
	api.HandleFunc("/athletes/export", middleware.RequireAdmin(athleteController.ExportAthletes(db))).Methods("GET")
	api.HandleFunc("/athletes/{id}", athleteController.GetAthlete(db)).Methods("GET")
	api.HandleFunc("/athletes/{id}", middleware.RequireAdmin(athleteController.UpdateAthlete(db))).Methods("PUT")
	api.HandleFunc("/athletes/{id}", middleware.RequireAdmin(athleteController.DeleteAthlete(db))).Methods("DELETE")

	api.HandleFunc("/competitions", competitionController.GetCompetitions(db)).Methods("GET")
	api.HandleFunc("/competitions", middleware.RequireAdmin(competitionController.CreateCompetition(db))).Methods("POST")
	api.HandleFunc("/competitions/{id}", competitionController.GetCompetition(db)).Methods("GET")
	api.HandleFunc("/competitions/{id}", middleware.RequireAdmin(competitionController.UpdateCompetition(db))).Methods("PUT")
	api.HandleFunc("/competitions/{id}", middleware.RequireAdmin(competitionController.DeleteCompetition(db))).Methods("DELETE")

	api.HandleFunc("/categories", categoryController.GetCategories(db)).Methods("GET")
	api.HandleFunc("/categories", middleware.RequireAdmin(categoryController.CreateCategory(db))).Methods("POST")

	api.HandleFunc("/send-approval-email", middleware.RequireAdmin(notifyController.SendApprovalEmail())).Methods("POST")
	api.HandleFunc("/notify-admin-new-athlete", notifyController.NotifyAdminNewAthlete()).Methods("POST")

	cr := scheduler.Start(db)
	defer cr.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	logrus.WithField("port", port).Info("server started")
	logrus.Fatal(http.ListenAndServe(":"+port, router))
}
