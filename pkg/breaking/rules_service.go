package breaking

import (
	"fmt"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

func serviceNoDelete(samePackageOnly bool) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		if samePackageOnly && prev.Package != curr.Package {
			return nil
		}
		prevSvcs := allServices(prev)
		currSvcs := allServices(curr)
		var changes []Change
		for _, name := range sortedKeys(prevSvcs) {
			if _, ok := currSvcs[name]; ok {
				continue
			}
			changes = append(changes, changeWithPrevious(
				KindFile, curr.Package, KindService, name,
				fmt.Sprintf("Service %q was deleted.", name)))
		}
		return changes
	}
}

var (
	checkServiceNoDelete        = serviceNoDelete(false)
	checkPackageServiceNoDelete = serviceNoDelete(true)
)

func checkRPCNoDelete(prev, curr *canonical.File, ctx *Context) []Change {
	prevSvcs := allServices(prev)
	currSvcs := allServices(curr)
	var changes []Change
	for _, name := range sortedKeys(prevSvcs) {
		cs, ok := currSvcs[name]
		if !ok {
			continue
		}
		for _, pm := range prevSvcs[name].Methods {
			if cs.MethodByName(pm.Name) == nil {
				changes = append(changes, changeWithPrevious(
					KindService, name, KindRPC, name+"."+pm.Name,
					fmt.Sprintf("RPC %q was deleted from service %q.", pm.Name, name)))
			}
		}
	}
	return changes
}

// methodProperty builds a same-property check over one RPC attribute.
func methodProperty(property string, get func(m *canonical.Method) string) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		var changes []Change
		eachMethodPair(prev, curr, func(svc string, pm, cm *canonical.Method) {
			prevValue, currValue := get(pm), get(cm)
			if prevValue == currValue {
				return
			}
			changes = append(changes, change(KindRPC, svc+"."+cm.Name, fmt.Sprintf(
				"RPC %q on service %q changed %s from %s to %s.",
				cm.Name, svc, property, displayValue(prevValue), displayValue(currValue))))
		})
		return changes
	}
}

var (
	checkRPCSameRequestType     = methodProperty("request type", func(m *canonical.Method) string { return m.InputType })
	checkRPCSameResponseType    = methodProperty("response type", func(m *canonical.Method) string { return m.OutputType })
	checkRPCSameClientStreaming = methodProperty("client streaming", func(m *canonical.Method) string {
		return streamingDisplay(m.ClientStreaming)
	})
	checkRPCSameServerStreaming = methodProperty("server streaming", func(m *canonical.Method) string {
		return streamingDisplay(m.ServerStreaming)
	})
	checkRPCSameIdempotencyLevel = methodProperty("idempotency level", func(m *canonical.Method) string {
		return idempotencyDisplay(m.IdempotencyLevel)
	})
)

func streamingDisplay(streaming bool) string {
	if streaming {
		return "streaming"
	}
	return "unary"
}

func idempotencyDisplay(level string) string {
	if level == "" {
		return "IDEMPOTENCY_UNKNOWN"
	}
	return level
}
