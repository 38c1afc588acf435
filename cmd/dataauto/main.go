// Command dataauto automates routine data-analysis tasks: loading, cleaning,
// outlier removal, scaling, plotting, model training, PDF reports and
// daily scheduling of any of them.
package main

import (
	"os"

	"github.com/YuminosukeSato/dataauto/cli"
)

func main() {
	os.Exit(cli.Execute())
}
