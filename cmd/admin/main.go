package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"perfume-catalog/internal/core/config"
	"perfume-catalog/internal/core/database"
	"perfume-catalog/internal/core/logger"
	"perfume-catalog/internal/repo"
	"perfume-catalog/internal/service"
)

// env 用于持有各子命令共享的配置、日志与数据库
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (e *env) open() error {
	if e.cfg.DB.Driver == "memory" {
		return errors.New("db.driver=memory: nothing to administer, point the config at postgres or mysql")
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             e.cfg.DB.Driver,
		DSN:                e.cfg.DB.DSN,
		Username:           e.cfg.DB.Username,
		Password:           e.cfg.DB.Password,
		MaxOpenConns:       2,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: e.cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           e.cfg.DB.LogLevel,
		Logger:             e.log,
	})
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	e.db = db
	return nil
}

func (e *env) users() *service.UserService {
	return service.NewUserService(repo.GormStores(e.db).Users)
}

func main() {
	_ = godotenv.Load()

	var (
		cfgPath = os.Getenv("CONFIG_PATH")
		e       = &env{}
		flush   = func() {}
	)

	root := &cobra.Command{
		Use:           "perfume-admin",
		Short:         "perfume-catalog 运维命令（迁移、管理员账号）",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log, flush = logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
			return e.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) { flush() },
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "配置文件路径（env CONFIG_PATH）")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "建表 / 补字段",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			e.log.Info("migrate done", zap.String("driver", e.cfg.DB.Driver))
			return nil
		},
	}

	var username, password, email string
	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "创建管理员（ADMIN + USER）",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" || email == "" {
				return errors.New("--username, --password and --email are required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			u, err := e.users().CreateAdmin(ctx, username, password, email)
			if err != nil {
				return err
			}
			fmt.Printf("admin %q created (id=%d)\n", u.Username, u.ID)
			return nil
		},
	}
	createAdminCmd.Flags().StringVar(&username, "username", "", "用户名")
	createAdminCmd.Flags().StringVar(&password, "password", "", "密码（至少 6 位）")
	createAdminCmd.Flags().StringVar(&email, "email", "", "邮箱")

	resetCmd := &cobra.Command{
		Use:   "reset-password",
		Short: "重置指定用户的密码",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := e.users().ResetPasswordByUsername(ctx, username, service.ResetPasswordInput{Password: password}); err != nil {
				return err
			}
			fmt.Printf("password of %q reset\n", username)
			return nil
		},
	}
	resetCmd.Flags().StringVar(&username, "username", "", "用户名")
	resetCmd.Flags().StringVar(&password, "password", "", "新密码（至少 6 位）")

	root.AddCommand(migrateCmd, createAdminCmd, resetCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		flush()
		os.Exit(1)
	}
}
