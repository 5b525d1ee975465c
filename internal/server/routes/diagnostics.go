package routes

import (
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/any-index/any-index/internal/account"
	"github.com/any-index/any-index/internal/metrics"
	"github.com/any-index/any-index/internal/provider"
)

// AccountLister 由 account.Directory 实现。
type AccountLister interface {
	List() []*account.Account
}

// RegisterDiagnostics 暴露 /-/accounts 与 /-/metrics 诊断接口。
func RegisterDiagnostics(app *fiber.App, accounts AccountLister) {
	if app == nil || accounts == nil {
		return
	}

	app.Get("/-/accounts", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"accounts":  encodeAccounts(accounts.List()),
			"providers": provider.Types(),
		})
	})

	app.Get("/-/accounts/:id", func(c fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "account_id_invalid"})
		}
		for _, acc := range accounts.List() {
			if acc.ID == id {
				return c.JSON(encodeAccount(acc))
			}
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account_not_found"})
	})

	app.Get("/-/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

type accountPayload struct {
	ID         int    `json:"id"`
	Hash       string `json:"hash"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Root       string `json:"root"`
	ListLimit  int    `json:"list_limit"`
	Registered bool   `json:"provider_registered"`
}

func encodeAccounts(list []*account.Account) []accountPayload {
	if len(list) == 0 {
		return nil
	}
	result := make([]accountPayload, 0, len(list))
	for _, acc := range list {
		result = append(result, encodeAccount(acc))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

func encodeAccount(acc *account.Account) accountPayload {
	_, registered := provider.Resolve(acc.Type)
	return accountPayload{
		ID:         acc.ID,
		Hash:       acc.Hash,
		Name:       acc.Name,
		Type:       acc.Type,
		Root:       acc.Root,
		ListLimit:  acc.ListLimit,
		Registered: registered,
	}
}
