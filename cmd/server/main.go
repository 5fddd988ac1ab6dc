package main

import "geekdeals/internal/app"

// @title                       Geek Deals API
// @version                     1.0
// @description                 Two-step login (password + emailed code) and the deals catalog.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	app.Run()
}
