package main

import (
	"go.uber.org/fx"

	"github.com/constructflow/constructflow/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
