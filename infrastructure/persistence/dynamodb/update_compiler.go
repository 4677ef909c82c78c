package dynamodb

import (
	"fmt"
	"strings"

	"userdir-backend/domain/user"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// compiledUpdate is one partial-write instruction: the expression text plus
// the out-of-band name and value placeholder mappings DynamoDB requires to
// sidestep reserved-word collisions and injection.
type compiledUpdate struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// compileUpdate translates a change set into a single set-clause update
// expression.
//
// Changes are consumed in insertion order, so the output is deterministic for
// a given set. One counter feeds both placeholder families and advances once
// per change:
//
//	["status"]                    -> "status = :c1"
//	["profile", "email"]          -> "profile.#p2 = :c2"
//	["profile", "address", "city"]-> "profile.#p3.#pp3 = :c3"
//
// Counter state is local to one call and never shared. Values the store
// cannot represent fail marshaling here; anything else the store rejects
// itself.
func compileUpdate(changes *user.ChangeSet) (*compiledUpdate, error) {
	var exp strings.Builder
	exp.WriteString("set")

	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)

	i := 1
	for _, change := range changes.Changes() {
		av, err := attributevalue.Marshal(change.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value for %s: %w",
				strings.Join(change.Path, "."), err)
		}

		v := fmt.Sprintf(":c%d", i)
		values[v] = av

		switch len(change.Path) {
		case 1:
			fmt.Fprintf(&exp, " %s = %s,", change.Path[0], v)
		case 2:
			p := fmt.Sprintf("#p%d", i)
			names[p] = change.Path[1]
			fmt.Fprintf(&exp, " %s.%s = %s,", change.Path[0], p, v)
		case 3:
			p := fmt.Sprintf("#p%d", i)
			pp := fmt.Sprintf("#pp%d", i)
			names[p] = change.Path[1]
			names[pp] = change.Path[2]
			fmt.Fprintf(&exp, " %s.%s.%s = %s,", change.Path[0], p, pp, v)
		default:
			return nil, fmt.Errorf("unsupported change path depth %d", len(change.Path))
		}
		i++
	}

	return &compiledUpdate{
		Expression: strings.TrimSuffix(exp.String(), ","),
		Names:      names,
		Values:     values,
	}, nil
}
