package main

import "github.com/fatih/color"

var (
	red       = color.New(color.FgRed)
	yellow    = color.New(color.FgYellow)
	cyan      = color.New(color.FgCyan)
	cyanBold  = color.New(color.FgCyan).Add(color.Bold)
	green     = color.New(color.FgGreen)
	greenBold = color.New(color.FgGreen).Add(color.Bold)
)
