package config

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	promotiondomain "github.com/smallbiznis/kasira/internal/promotion/domain"
	"github.com/smallbiznis/kasira/pkg/money"
)

// PromotionsHolder hands out the currently active promotion set. The
// promotions file is watched and hot-reloaded; an invalid file keeps
// the previous set instead of dropping promotions mid-shift.
type PromotionsHolder struct {
	current atomic.Value // holds []promotiondomain.Promotion
}

type promotionSpec struct {
	Kind         string  `mapstructure:"kind"`
	Percent      float64 `mapstructure:"percent"`
	Amount       string  `mapstructure:"amount"`
	ProductID    int64   `mapstructure:"product_id"`
	BuyQuantity  int64   `mapstructure:"buy_quantity"`
	FreeQuantity int64   `mapstructure:"free_quantity"`
	StartHour    int     `mapstructure:"start_hour"`
	EndHour      int     `mapstructure:"end_hour"`
}

func NewPromotionsHolder() (*PromotionsHolder, error) {
	v := viper.New()

	v.SetConfigName("promotions")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/kasira")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KASIRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PromotionsHolder{}
	holder.current.Store([]promotiondomain.Promotion{})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No promotions file is a normal deployment; promotions then
		// only arrive explicitly with each checkout request.
		return holder, nil
	}

	promotions, err := loadPromotions(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(promotions)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := loadPromotions(v)
		if err != nil {
			log.Printf("[promotions-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[promotions-config] reloaded %d promotions from %s", len(updated), e.Name)
	})

	return holder, nil
}

// Active returns the promotion set currently in force.
func (h *PromotionsHolder) Active() []promotiondomain.Promotion {
	return h.current.Load().([]promotiondomain.Promotion)
}

func loadPromotions(v *viper.Viper) ([]promotiondomain.Promotion, error) {
	var specs []promotionSpec
	if err := v.UnmarshalKey("promotions", &specs); err != nil {
		return nil, err
	}

	promotions := make([]promotiondomain.Promotion, 0, len(specs))
	for i, spec := range specs {
		promotion := promotiondomain.Promotion{
			Kind:         promotiondomain.Kind(strings.TrimSpace(spec.Kind)),
			Percent:      spec.Percent,
			ProductID:    snowflake.ID(spec.ProductID),
			BuyQuantity:  spec.BuyQuantity,
			FreeQuantity: spec.FreeQuantity,
			StartHour:    spec.StartHour,
			EndHour:      spec.EndHour,
		}
		if spec.Amount != "" {
			amount, err := money.ParseNonNegative(spec.Amount)
			if err != nil {
				return nil, fmt.Errorf("promotion %d: amount %q: %w", i, spec.Amount, err)
			}
			promotion.Amount = amount
		}
		if err := promotion.Validate(); err != nil {
			return nil, fmt.Errorf("promotion %d (%s): %w", i, spec.Kind, err)
		}
		promotions = append(promotions, promotion)
	}
	return promotions, nil
}
