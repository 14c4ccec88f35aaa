package env

import "github.com/msxvi/strategy/core/factory"

var registry = factory.NewRegistry[Oracle]()

// Register adds an oracle factory identified by name.
func Register(name string, f factory.Factory[Oracle]) error {
	return registry.Register(name, f)
}

// New creates an Oracle from the provided module configuration.
func New(cfg factory.ModuleConfig) (Oracle, error) {
	return registry.Create(cfg)
}

type tableConf struct {
	DT   float64 `json:"dt"`
	Rows []Row   `json:"rows"`
}

type rampConf struct {
	StartWM2 float64 `json:"start_wm2"`
	EndWM2   float64 `json:"end_wm2"`
	Steps    int     `json:"steps"`
	DT       float64 `json:"dt"`
}

type yamlConf struct {
	Path string `json:"path"`
}

func init() {
	must(Register("table", func(conf map[string]any) (Oracle, error) {
		var c tableConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewTable(c.DT, c.Rows)
	}))
	must(Register("ramp", func(conf map[string]any) (Oracle, error) {
		var c rampConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRamp(c.StartWM2, c.EndWM2, c.Steps, c.DT)
	}))
	must(Register("yaml", func(conf map[string]any) (Oracle, error) {
		var c yamlConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		p, err := LoadProfile(c.Path)
		if err != nil {
			return nil, err
		}
		return p.Oracle()
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
