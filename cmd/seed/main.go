package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
	"github.com/Smarty6452/hbros-platform/backend/internal/db"
	"github.com/Smarty6452/hbros-platform/backend/internal/logger"
	"github.com/Smarty6452/hbros-platform/backend/internal/repository"
	"github.com/Smarty6452/hbros-platform/backend/internal/seed"
)

func main() {
	var posters, viewers, jobsPerPoster, interestsPerViewer, maxAgeDays int

	flag.IntVar(&posters, "posters", 5, "要插入的发布者数量")
	flag.IntVar(&viewers, "viewers", 20, "要插入的浏览者数量")
	flag.IntVar(&jobsPerPoster, "jobs", 6, "每个发布者的岗位数量")
	flag.IntVar(&interestsPerViewer, "interests", 3, "每个浏览者感兴趣的岗位数量")
	flag.IntVar(&maxAgeDays, "max-age-days", 90, "岗位发布时间最早可以在多少天之前，超过约 60 天的岗位已过期")
	flag.Parse()

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)

	if posters < 0 || viewers < 0 || jobsPerPoster < 0 || interestsPerViewer < 0 || maxAgeDays <= 0 {
		log.Error("请输入合法的数量")
		os.Exit(1)
	}

	ctx := context.Background()

	// 创建数据库连接池
	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		log.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("数据库迁移失败", "error", err)
		os.Exit(1)
	}

	repo := repository.NewRepository(cfg, pool)

	res := seed.SeedDemoData(ctx, repo, seed.Options{
		Posters:            posters,
		Viewers:            viewers,
		JobsPerPoster:      jobsPerPoster,
		InterestsPerViewer: interestsPerViewer,
		Password:           cfg.Seed.User.Password,
		EmailDomain:        cfg.Seed.EmailDomain,
		MaxJobAge:          time.Duration(maxAgeDays) * 24 * time.Hour,
	})

	log.Info("插入测试数据成功", slog.Int("users", res.Users), slog.Int("jobs", res.Jobs), slog.Int("interests", res.Interests))
}
