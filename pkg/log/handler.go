package log

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// extractStacktrace は cockroachdb/errors が付与したスタックトレースを取り出します。
// スタックを持たないエラーでは空文字列を返します。
func extractStacktrace(err error) string {
	if err == nil {
		return ""
	}
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, detail := range payload.SafeDetails {
			if detail != "" {
				return detail
			}
		}
	}
	if verbose := fmt.Sprintf("%+v", err); verbose != err.Error() {
		return verbose
	}
	return ""
}

// errorType は構造化エラーの型名を返します。
// MarshalZerologObject を実装しない型は Go の型名になります。
func errorType(err error) string {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if _, ok := e.(zerolog.LogObjectMarshaler); ok {
			return fmt.Sprintf("%T", e)
		}
	}
	return fmt.Sprintf("%T", errors.UnwrapAll(err))
}

// appendError はエラー本体・型・スタックトレースをイベントに追加します。
// 構造化エラーであれば詳細を "error.detail" オブジェクトとして出力します。
func appendError(ev *zerolog.Event, err error) *zerolog.Event {
	ev = ev.Str(ErrorKey, err.Error()).Str(ErrorTypeKey, errorType(err))
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if m, ok := e.(zerolog.LogObjectMarshaler); ok {
			ev = ev.Object("error.detail", m)
			break
		}
	}
	if st := extractStacktrace(err); st != "" {
		ev = ev.Str(StacktraceKey, st)
	}
	return ev
}
