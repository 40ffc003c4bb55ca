package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	okFmt  = color.New(color.FgGreen, color.Bold).SprintFunc()
	errFmt = color.New(color.FgRed, color.Bold).SprintFunc()
	dimFmt = color.New(color.Faint).SprintFunc()
)

func okf(format string, args ...any) {
	fmt.Println(okFmt(fmt.Sprintf(format, args...)))
}

func failf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errFmt("error: ")+fmt.Sprintf(format, args...))
}
