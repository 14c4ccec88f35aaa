// Package factory provides a small generic registry used to instantiate
// modules from configuration. Modules are defined by a type string and a map
// of raw settings. Factories decode the settings into typed structs and
// return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[env.Oracle]()
//	reg.Register("ramp", func(conf map[string]any) (env.Oracle, error) {
//	    var c struct{ Start float64 `json:"start"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return env.NewRamp(c.Start, ...), nil
//	})
//	o, err := reg.Create(factory.ModuleConfig{Type: "ramp", Conf: map[string]any{"start": 700}})
package factory
