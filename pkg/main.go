package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pkg "git.solsynth.dev/hypernet/typeidea/pkg/internal"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/cache"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/grpc"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/http"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Command line
	pflag.String("create-user", "", "create an account with the given name and exit")
	pflag.String("password", "", "password of the created account")
	pflag.Bool("staff", false, "the created account may use the /admin/ site")
	pflag.Bool("superuser", false, "the created account may use every site")
	pflag.Parse()

	// Booting screen
	fmt.Println(color.YellowString(" _____                 _     _\n|_   _|   _ _ __   ___(_) __| | ___  __ _\n  | || | | | '_ \\ / _ \\ |/ _` |/ _ \\/ _` |\n  | || |_| | |_) |  __/ | (_| |  __/ (_| |\n  |_| \\__, | .__/ \\___|_|\\__,_|\\___|\\__,_|\n      |___/|_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Typeidea"), pkg.AppVersion)
	fmt.Printf("The blog back office\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		log.Panic().Err(err).Msg("An error occurred when binding command line flags.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Provision account
	if name := viper.GetString("create-user"); len(name) > 0 {
		account, err := services.CreateAccount(
			name,
			"",
			viper.GetString("password"),
			viper.GetBool("staff"),
			viper.GetBool("superuser"),
		)
		if err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("An error occurred when creating account.")
		}
		log.Info().Uint("id", account.ID).Str("name", account.Name).Msg("Account created.")
		return
	}

	// Initialize cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.Start()

	// Server
	server := http.NewServer()
	go server.Listen()

	health := grpc.NewGrpc()
	go func() {
		if err := health.Listen(); err != nil {
			log.Error().Err(err).Msg("An error occurred when serving gRPC health service...")
		}
	}()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	health.Stop()
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("An error occurred when shutting down server...")
	}
	quartz.Stop()
}
