package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "aisca"
)

type Config struct {
	Reference *ReferenceConfig `mapstructure:"reference"`
	Cache     *CacheConfig     `mapstructure:"cache"`
	Data      *DataConfig      `mapstructure:"data"`
	AI        *AIConfig        `mapstructure:"ai"`
}

type ReferenceConfig struct {
	Competencies    string `mapstructure:"competencies"`
	NumericProfiles string `mapstructure:"numeric-profiles"`
}

type CacheConfig struct {
	File string `mapstructure:"file"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile          string `mapstructure:"api-key-file"`
	Model               string `mapstructure:"model"`
	EmbeddingModel      string `mapstructure:"embedding-model"`
	EmbeddingDimensions int    `mapstructure:"embedding-dimensions"`
	MaxRetries          int    `mapstructure:"max-retries"`
	BackoffSeconds      int    `mapstructure:"backoff-seconds"`
	MaxLogLength        int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "aisca assesses a skills questionnaire and recommends data roles with a generated bio and roadmap",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is aisca.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
