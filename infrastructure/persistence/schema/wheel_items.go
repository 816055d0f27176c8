package schema

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// WheelItems returns the migration chain for wheel metadata items.
//
// Version 1 items came from the first release, which stored the title
// under Name and had no visibility.
func WheelItems() *Evolution {
	e := NewEvolution()
	_ = e.RegisterMigration(Migration{
		FromVersion: 1,
		ToVersion:   2,
		Description: "rename Name to Title, default Visibility to private",
		Up: func(item Item) error {
			if name, ok := item["Name"]; ok {
				if _, has := item["Title"]; !has {
					item["Title"] = name
				}
				delete(item, "Name")
			}
			if _, ok := item["Visibility"]; !ok {
				item["Visibility"] = &types.AttributeValueMemberS{Value: "private"}
			}
			return nil
		},
	})
	return e
}
