// Command invoicectl edita el borrador de factura desde la terminal usando el mismo
// almacén local que el servidor.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/invoice-builder/internal/app"
	"github.com/jhoicas/invoice-builder/pkg/config"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

func main() {
	cli := newCLI(openFromEnv)
	if err := cli.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openFromEnv abre el borrador con la configuración de entorno. Los logs van a stderr
// para no mezclarse con la salida de los comandos.
func openFromEnv(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		Out:   os.Stderr,
	})
	return app.New(ctx, cfg, log)
}
