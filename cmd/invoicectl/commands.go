package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/invoice-builder/internal/app"
	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/money"
)

// opener abre el borrador; cada comando lo abre, aplica su cambio y lo cierra (escribiendo).
type opener func(ctx context.Context) (*app.App, error)

func newCLI(open opener) *cli.App {
	return &cli.App{
		Name:  "invoicectl",
		Usage: "editar y exportar el borrador de factura local",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "muestra el borrador y sus totales",
				Action: withApp(open, show),
			},
			{
				Name:      "set",
				Usage:     "asigna un campo (invoiceNumber, date, toName, taxType, taxPercent, currency, ...)",
				ArgsUsage: "<campo> <valor>",
				Action: withApp(open, func(c *cli.Context, a *app.App) error {
					if c.NArg() != 2 {
						return cli.Exit("uso: invoicectl set <campo> <valor>", 2)
					}
					if err := a.Session.Editor().SetField(c.Args().Get(0), c.Args().Get(1)); err != nil {
						return err
					}
					return show(c, a)
				}),
			},
			{
				Name:  "item",
				Usage: "líneas del borrador",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "agrega una línea vacía",
						Action: withApp(open, func(c *cli.Context, a *app.App) error {
							it := a.Session.Editor().AddLineItem()
							fmt.Fprintln(c.App.Writer, it.ID)
							return nil
						}),
					},
					{
						Name:      "remove",
						Usage:     "elimina una línea (siempre queda al menos una)",
						ArgsUsage: "<id>",
						Action: withApp(open, func(c *cli.Context, a *app.App) error {
							if c.NArg() != 1 {
								return cli.Exit("uso: invoicectl item remove <id>", 2)
							}
							return a.Session.Editor().RemoveLineItem(c.Args().First())
						}),
					},
					{
						Name:      "set",
						Usage:     "modifica description, qty o rate de una línea",
						ArgsUsage: "<id> <campo> <valor>",
						Action: withApp(open, func(c *cli.Context, a *app.App) error {
							if c.NArg() != 3 {
								return cli.Exit("uso: invoicectl item set <id> <campo> <valor>", 2)
							}
							args := c.Args()
							return a.Session.Editor().UpdateLineItem(args.Get(0), args.Get(1), args.Get(2))
						}),
					},
				},
			},
			{
				Name:  "logo",
				Usage: "logo del emisor",
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "carga el logo desde un archivo de imagen",
						ArgsUsage: "<archivo>",
						Action: withApp(open, func(c *cli.Context, a *app.App) error {
							if c.NArg() != 1 {
								return cli.Exit("uso: invoicectl logo set <archivo>", 2)
							}
							data, err := os.ReadFile(c.Args().First())
							if err != nil {
								return err
							}
							uri, err := a.LogoCodec.Encode(c.Context, &entity.Logo{Data: data})
							if err != nil {
								return err
							}
							l, err := a.LogoCodec.Decode(uri)
							if err != nil {
								return err
							}
							return a.Session.Editor().SetLogo(*l)
						}),
					},
					{
						Name:  "remove",
						Usage: "quita el logo",
						Action: withApp(open, func(_ *cli.Context, a *app.App) error {
							a.Session.Editor().RemoveLogo()
							return nil
						}),
					},
				},
			},
			{
				Name:  "export",
				Usage: "genera el documento (pdf o xml)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: appdraft.DefaultExportFormat, Usage: "pdf | xml"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "archivo de salida (por defecto invoice_<número>.<ext>)"},
				},
				Action: withApp(open, func(c *cli.Context, a *app.App) error {
					res, err := a.Session.Export(c.Context, c.String("format"))
					if err != nil {
						return err
					}
					out := c.String("out")
					if out == "" {
						out = res.Filename
					}
					if err := os.WriteFile(filepath.Clean(out), res.Content, 0o644); err != nil {
						return fmt.Errorf("escribir %s: %w", out, err)
					}
					fmt.Fprintln(c.App.Writer, out)
					return nil
				}),
			},
			{
				Name:  "clear",
				Usage: "descarta el borrador guardado (sin deshacer)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "confirma el borrado"},
				},
				Action: withApp(open, func(c *cli.Context, a *app.App) error {
					err := a.Session.Clear(c.Context, c.Bool("yes"))
					if errors.Is(err, domain.ErrConfirmationRequired) {
						return cli.Exit("el borrado no se puede deshacer; repetir con --yes", 2)
					}
					return err
				}),
			},
		},
	}
}

// withApp abre el borrador, ejecuta fn y lo cierra guardando lo pendiente.
func withApp(open opener, fn func(c *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		a, err := open(c.Context)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(c.Context); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(c, a)
	}
}

func show(c *cli.Context, a *app.App) error {
	d, t := a.Session.Editor().View()
	w := c.App.Writer

	fmt.Fprintf(w, "Invoice #%s  Date: %s  Due: %s\n", d.InvoiceNumber, d.IssueDate, d.DueDate)
	fmt.Fprintf(w, "From: %s\nBill To: %s\n\n", d.FromName, d.ToName)
	for _, it := range d.Items {
		fmt.Fprintf(w, "%s  %-30s %8s x %14s = %14s\n",
			it.ID, it.Description, money.Quantity(it.Quantity),
			money.Format(it.Rate, d.Currency), money.Format(it.Amount(), d.Currency))
	}
	fmt.Fprintln(w)
	line(w, "Subtotal", money.Format(t.Subtotal, d.Currency))
	if !t.TaxValue.IsZero() {
		line(w, "Tax", money.Format(t.TaxValue, d.Currency))
	}
	if !t.DiscountAmount.IsZero() {
		line(w, "Discount", money.Format(t.DiscountAmount.Neg(), d.Currency))
	}
	if !d.ShippingFee.IsZero() {
		line(w, "Shipping", money.Format(d.ShippingFee, d.Currency))
	}
	line(w, "Total", money.Format(t.Total, d.Currency))
	if !d.AmountPaid.IsZero() {
		line(w, "Amount Paid", money.Format(d.AmountPaid, d.Currency))
	}
	line(w, "Balance Due", money.Format(t.BalanceDue, d.Currency))
	return nil
}

func line(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-12s %s\n", label+":", value)
}
