// Package render turns detector reports into the formats consumed by
// terminals, status bars (waybar, polybar) and logs.
package render
