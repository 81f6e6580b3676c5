// Package model maps rows onto simple active-record style values.
//
// A [Schema] names the table and primary key of a model. By convention the
// table is the snake_case plural of the model name:
//
//	model.For("User").Table        // users
//	model.For("UserAccount").Table // user_accounts
//	model.Of[Quiz]().Table         // quizzes
//
//	usuarios := model.NewRepository(model.For("Usuario",
//		model.WithTable("users"),
//		model.WithPrimaryKey("name"),
//	))
//
// A [Repository] loads [Record] values through any [Selector], usually a
// *database.Conn:
//
//	user, err := users.Find(ctx, conn, 1)
//	if errors.Is(err, model.ErrRecordNotFound) {
//		...
//	}
//	name := user.String("name")
//
// Errors from the database layer are returned unchanged.
package model
