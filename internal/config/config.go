package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"FiscoBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	WhatsApp struct {
		Token       string `yaml:"token" env-default:""`
		PhoneId     string `yaml:"phone_id" env-default:""`
		VerifyToken string `yaml:"verify_token" env-default:""`
		AppSecret   string `yaml:"app_secret" env-default:""`
		BaseURL     string `yaml:"base_url" env-default:"https://graph.facebook.com/v19.0"`
		Enabled     bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"whatsapp"`
	OpenAI struct {
		ApiKey      string `yaml:"api_key" env-default:""`
		AssistantID string `yaml:"assistant_id" env-default:""`
	} `yaml:"openai"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Bot struct {
		IntentConfidence float64 `yaml:"intent_confidence" env-default:"0.8"`
		WorkflowTimeout  int     `yaml:"workflow_timeout_min" env-default:"30"`
		SessionTTL       int     `yaml:"session_ttl_min" env-default:"1440"`
		NavStackDepth    int     `yaml:"nav_stack_depth" env-default:"10"`
		ReplyDelayMs     int     `yaml:"reply_delay_ms" env-default:"0"`
		DefaultLanguage  string  `yaml:"default_language" env-default:"fr"`
	} `yaml:"bot"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
