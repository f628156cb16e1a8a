package main

// @title                      Storefront API
// @version                    1.0
// @description                Customer accounts, product catalog, interactions and a role-scoped admin console.
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	Execute()
}
