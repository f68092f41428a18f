package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/shenikar/crowd_proximity_engine/internal/alert"
	"github.com/shenikar/crowd_proximity_engine/internal/density"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
)

// Policy - настройки оценки риска для площадки
type Policy struct {
	Risk    RiskPolicy    `mapstructure:"risk"`
	Alert   AlertPolicy   `mapstructure:"alert"`
	Density DensityPolicy `mapstructure:"density"`
}

type RiskPolicy struct {
	PeopleWeight      float64 `mapstructure:"people_weight"`
	MaxDensityWeight  float64 `mapstructure:"max_density_weight"`
	MeanDensityWeight float64 `mapstructure:"mean_density_weight"`
	HighThreshold     float64 `mapstructure:"high_threshold"`
	MediumThreshold   float64 `mapstructure:"medium_threshold"`
}

type AlertPolicy struct {
	OpenThreshold         float64 `mapstructure:"open_threshold"`
	HighSeverityThreshold float64 `mapstructure:"high_severity_threshold"`
}

// DensityPolicy - размеры кадра и параметры ядра, если пачка их не задает
type DensityPolicy struct {
	Width        int     `mapstructure:"width"`
	Height       int     `mapstructure:"height"`
	KernelRadius float64 `mapstructure:"kernel_radius"`
	Sigma        float64 `mapstructure:"sigma"`
}

// DefaultPolicy возвращает политику по умолчанию: кадр 400x300, радиус ядра 20, сигма 8
func DefaultPolicy() *Policy {
	rp := risk.DefaultPolicy()
	ap := alert.DefaultPolicy()
	return &Policy{
		Risk: RiskPolicy{
			PeopleWeight:      rp.PeopleWeight,
			MaxDensityWeight:  rp.MaxDensityWeight,
			MeanDensityWeight: rp.MeanDensityWeight,
			HighThreshold:     rp.HighThreshold,
			MediumThreshold:   rp.MediumThreshold,
		},
		Alert: AlertPolicy{
			OpenThreshold:         ap.OpenThreshold,
			HighSeverityThreshold: ap.HighSeverityThreshold,
		},
		Density: DensityPolicy{
			Width:        400,
			Height:       300,
			KernelRadius: 20,
			Sigma:        density.DefaultSigma,
		},
	}
}

// LoadPolicy читает файл политики (yaml, json, toml). Пустой путь или отсутствующий файл - значения по умолчанию.
// Любой ключ можно переопределить переменной окружения с префиксом CROWD_, например CROWD_RISK_HIGH_THRESHOLD.
func LoadPolicy(path string) (*Policy, error) {
	v := viper.New()

	v.SetEnvPrefix("CROWD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultPolicy()
	v.SetDefault("risk.people_weight", d.Risk.PeopleWeight)
	v.SetDefault("risk.max_density_weight", d.Risk.MaxDensityWeight)
	v.SetDefault("risk.mean_density_weight", d.Risk.MeanDensityWeight)
	v.SetDefault("risk.high_threshold", d.Risk.HighThreshold)
	v.SetDefault("risk.medium_threshold", d.Risk.MediumThreshold)
	v.SetDefault("alert.open_threshold", d.Alert.OpenThreshold)
	v.SetDefault("alert.high_severity_threshold", d.Alert.HighSeverityThreshold)
	v.SetDefault("density.width", d.Density.Width)
	v.SetDefault("density.height", d.Density.Height)
	v.SetDefault("density.kernel_radius", d.Density.KernelRadius)
	v.SetDefault("density.sigma", d.Density.Sigma)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read policy file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat policy file: %w", err)
		}
	}

	var p Policy
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("config: unmarshal policy: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Policy) validate() error {
	if p.Risk.MediumThreshold > p.Risk.HighThreshold {
		return fmt.Errorf("config: medium threshold %v is above high threshold %v", p.Risk.MediumThreshold, p.Risk.HighThreshold)
	}
	if p.Alert.HighSeverityThreshold < p.Alert.OpenThreshold {
		return fmt.Errorf("config: high severity threshold %v is below open threshold %v", p.Alert.HighSeverityThreshold, p.Alert.OpenThreshold)
	}
	if p.Density.Width <= 0 || p.Density.Height <= 0 || p.Density.KernelRadius <= 0 {
		return fmt.Errorf("config: density viewport must be positive")
	}
	return nil
}

// RiskPolicy переводит настройки в политику классификатора
func (p *Policy) RiskPolicy() risk.Policy {
	return risk.Policy{
		PeopleWeight:      p.Risk.PeopleWeight,
		MaxDensityWeight:  p.Risk.MaxDensityWeight,
		MeanDensityWeight: p.Risk.MeanDensityWeight,
		HighThreshold:     p.Risk.HighThreshold,
		MediumThreshold:   p.Risk.MediumThreshold,
	}
}

// AlertPolicy переводит настройки в политику оповещений
func (p *Policy) AlertPolicy() alert.Policy {
	return alert.Policy{
		OpenThreshold:         p.Alert.OpenThreshold,
		HighSeverityThreshold: p.Alert.HighSeverityThreshold,
	}
}
