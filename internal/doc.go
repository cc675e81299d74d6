// Package internal is the web core of gatlingbook.
//
// Requests first pass the chi mux, which answers health checks and static
// files. Everything else reaches the route table, which works like this:
//
//   - Handlers declare routes (GET, POST) and before-filters on a Router.
//     Path patterns use ":name" for parameter segments.
//   - At startup the table is frozen and sorted literal-first, so "/login"
//     wins over "/:page" no matter which was registered first.
//   - For every request the filters whose pattern matches the path run in
//     registration order. A filter returns Continue, Redirect or Respond;
//     anything but Continue halts the request.
//   - Otherwise the route for method and path is looked up (404 or 405 when
//     there is none) and its handler runs. Handlers return an Outcome, most
//     often View(name, data) or Redirect(location).
//
// Each request moves through Received, Filtering, Halted or Dispatching,
// Handling and finally Responded; Context.State reports where it is.
//
// Errors returned by filters, handlers or middleware go to the error handler.
// DefaultErrorHandler maps HTTPError to its code, ErrDecode to 501 and
// everything else to 500.
//
// Sessions are loaded lazily by Context.Session and saved right before the
// first response byte, together with the signed session cookie.
package internal
