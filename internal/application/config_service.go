package application

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/config"
)

// ConfigService 主機配置服務
type ConfigService struct {
	repo   config.Repository
	logger *zap.Logger
	mu     sync.Mutex
}

// NewConfigService 創建配置服務
func NewConfigService(repo config.Repository, logger *zap.Logger) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigService{
		repo:   repo,
		logger: logger,
	}
}

// GetConfig 獲取當前配置
func (s *ConfigService) GetConfig(ctx context.Context) (*config.Config, error) {
	return s.repo.Load(ctx)
}

// UpdateConfig 原子更新配置
// 邏輯：Lock -> Load -> DeepCopy -> Modify -> Validate -> Save -> Unlock
func (s *ConfigService) UpdateConfig(ctx context.Context, modifier func(*config.Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. 加載當前配置
	current, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("加載配置失敗: %w", err)
	}

	// 2. 在副本上修改
	next := current.DeepCopy()
	if err := modifier(next); err != nil {
		return fmt.Errorf("應用配置修改失敗: %w", err)
	}

	// 3. 驗證並保存
	if err := next.Validate(); err != nil {
		return fmt.Errorf("新配置驗證失敗: %w", err)
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("保存配置失敗: %w", err)
	}

	s.logger.Info("配置已更新並保存")
	return nil
}

// SaveWithDefaults 保存配置並自動填充默認值
func (s *ConfigService) SaveWithDefaults(ctx context.Context, cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.FillDefaults()
	if err := s.repo.Save(ctx, cfg); err != nil {
		return fmt.Errorf("保存配置失敗: %w", err)
	}
	s.logger.Info("配置已寫入", zap.Int("version", cfg.Version))
	return nil
}
