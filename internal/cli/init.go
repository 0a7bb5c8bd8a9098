package cli

import "github.com/julianstephens/quitlog/internal/config"

type InitCmd struct {
	WriteConfig bool `help:"Also write a default config.yaml next to the store."`
}

func (c *InitCmd) Run(ctx *Context) error {
	backend := ctx.Store.Backend()
	if err := backend.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized quitlog storage at: %s\n", backend.GetConfigPath())

	if c.WriteConfig {
		path := config.PathFor(backend.GetConfigPath())
		if err := config.Save(path, ctx.Config); err != nil {
			return err
		}
		ctx.printf("Wrote config: %s\n", path)
	}
	return nil
}
