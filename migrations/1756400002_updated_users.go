package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		users.Fields.Add(
			&core.TextField{
				Name:     "username",
				Required: true,
				Max:      150,
			},
			&core.TextField{
				Name: "first_name",
				Max:  150,
			},
			&core.TextField{
				Name: "last_name",
				Max:  150,
			},
			&core.BoolField{
				Name: "is_superuser",
			},
		)

		users.AddIndex("idx_users_username", true, "username", "")

		return app.Save(users)
	}, func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		users.Fields.RemoveByName("username")
		users.Fields.RemoveByName("first_name")
		users.Fields.RemoveByName("last_name")
		users.Fields.RemoveByName("is_superuser")
		users.RemoveIndex("idx_users_username")

		return app.Save(users)
	})
}
