package converter

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is a conversion preset loaded from a YAML file.
type Config struct {
	Scale           float64 `yaml:"scale"`
	ForceUnlit      bool    `yaml:"forceUnlit"`
	GenerateNormals bool    `yaml:"generateNormals"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return &conf, nil
}

func (c *Config) Option() *OBJToGLTFOption {
	return &OBJToGLTFOption{
		Scale:           c.Scale,
		ForceUnlit:      c.ForceUnlit,
		GenerateNormals: c.GenerateNormals,
	}
}
